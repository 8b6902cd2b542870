package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"AmbientSensors.api/internal/client"
	"AmbientSensors.api/internal/models"
	"AmbientSensors.api/internal/quality"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-url URL] [-timeout D] [-watch D] latest|devices|sensors\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var baseURL string
	var timeout, every time.Duration
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the sensor API")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	flag.DurationVar(&every, "watch", 0, "Refresh interval for latest, e.g. 60s (0 prints once)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	c := client.New(baseURL, timeout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "latest":
		if every > 0 {
			err = watch(ctx, every, func(ctx context.Context) error {
				fmt.Printf("\n%s\n", time.Now().Format(time.DateTime))
				return printLatest(ctx, os.Stdout, c)
			})
		} else {
			err = printLatest(ctx, os.Stdout, c)
		}
	case "devices":
		var rows []models.Record
		if rows, err = c.Devices(ctx); err == nil {
			err = printJSON(os.Stdout, rows)
		}
	case "sensors":
		var rows []models.Record
		if rows, err = c.Sensors(ctx); err == nil {
			err = printJSON(os.Stdout, rows)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		stop()
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func printLatest(ctx context.Context, w io.Writer, c *client.Client) error {
	readings, err := c.LatestReadings(ctx)
	if err != nil {
		return err
	}
	// Descriptions and units are optional; the table still renders without them.
	sensors, err := c.Sensors(ctx)
	if err != nil {
		log.Printf("sensors: %v (descriptions and units omitted)", err)
	}
	return renderLatest(w, readings, sensorIndex(sensors))
}

// watch runs fn once, then every interval until ctx is done. Failures are
// logged and do not stop the loop.
func watch(ctx context.Context, interval time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := fn(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Printf("refresh: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type sensorInfo struct {
	Description string
	Units       map[string]string
}

// renderLatest writes one block per sensor, titled with its description.
// Readings arrive ordered by sensor.
func renderLatest(w io.Writer, readings []models.ReadingWithThresholds, sensors map[int64]sensorInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, r := range readings {
		if i == 0 || readings[i-1].SensorID != r.SensorID {
			if i > 0 {
				fmt.Fprintln(tw)
			}
			title := fmt.Sprintf("Sensor %d (%s)", r.SensorID, r.SensorType)
			if d := sensors[r.SensorID].Description; d != "" {
				title += ": " + d
			}
			fmt.Fprintln(tw, title)
			fmt.Fprintln(tw, "  METRIC\tVALUE\tUNIT\tTIME\tQUALITY")
		}
		fmt.Fprintf(tw, "  %s\t%g\t%s\t%s\t%s\n",
			r.MetricType, r.Value,
			sensors[r.SensorID].Units[r.MetricType],
			r.Time.Local().Format(time.DateTime),
			quality.Classify(r))
	}
	return tw.Flush()
}

// sensorIndex reads metadata.description and metadata.fields[metric].unit
// per sensor id.
func sensorIndex(sensors []models.Record) map[int64]sensorInfo {
	out := make(map[int64]sensorInfo, len(sensors))
	for _, s := range sensors {
		id, ok := s["sensor_id"].(float64)
		if !ok {
			continue
		}
		meta, _ := s["metadata"].(map[string]any)
		info := sensorInfo{Units: map[string]string{}}
		info.Description, _ = meta["description"].(string)
		fields, _ := meta["fields"].(map[string]any)
		for metric, f := range fields {
			field, _ := f.(map[string]any)
			if unit, _ := field["unit"].(string); unit != "" {
				info.Units[metric] = unit
			}
		}
		out[int64(id)] = info
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
