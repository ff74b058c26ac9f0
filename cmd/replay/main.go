// Command replay pushes a CSV recording into the ingest server over several
// concurrent websocket streams and summarizes the session events it gets back.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/radio"
	"github.com/hubenschmidt/brainwave-radio/internal/source"
)

func main() {
	server := flag.String("server", "ws://localhost:8000/ws/stream", "ingest server websocket URL")
	concurrency := flag.Int("concurrency", 1, "number of concurrent streams")
	interval := flag.Duration("interval", 100*time.Millisecond, "delay between samples")
	desired := flag.String("desired", "", "desired emotion sent in the start frame")
	engine := flag.String("engine", "", "music engine sent in the start frame")
	timeout := flag.Duration("timeout", 10*time.Minute, "how long to wait for the server after the last sample")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: replay [flags] <recording.csv>")
		os.Exit(2)
	}
	samples, err := source.LoadCSV(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load recording: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Replay: %d samples x %d streams every %s\n", len(samples), *concurrency, *interval)
	fmt.Printf("Server: %s\n\n", *server)

	opts := replayOptions{
		url:      *server,
		name:     filepath.Base(flag.Arg(0)),
		interval: *interval,
		desired:  *desired,
		engine:   *engine,
		timeout:  *timeout,
	}

	results := make([]streamResult, *concurrency)
	var wg sync.WaitGroup
	for i := range *concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runStream(i, opts, samples)
		}()
	}
	wg.Wait()

	printSummary(os.Stdout, results)
}

type replayOptions struct {
	url      string
	name     string
	interval time.Duration
	desired  string
	engine   string
	timeout  time.Duration
}

type startFrame struct {
	Type           string `json:"type"`
	Source         string `json:"source"`
	DesiredEmotion string `json:"desired_emotion,omitempty"`
	Engine         string `json:"engine,omitempty"`
}

type streamEvents struct {
	sessions  int
	tracks    []string
	latencies []float64
	errors    []string
	readErr   string
}

type streamResult struct {
	streamEvents
	id      int
	samples int
	elapsed time.Duration
	err     string
}

func runStream(id int, opts replayOptions, samples []eeg.Sample) streamResult {
	start := time.Now()
	res := streamResult{id: id}

	conn, _, err := websocket.DefaultDialer.Dial(opts.url, nil)
	if err != nil {
		res.err = fmt.Sprintf("dial: %v", err)
		return res
	}
	defer conn.Close()

	meta, _ := json.Marshal(startFrame{
		Type:           "start",
		Source:         fmt.Sprintf("replay:%s#%d", opts.name, id),
		DesiredEmotion: opts.desired,
		Engine:         opts.engine,
	})
	if err = conn.WriteMessage(websocket.TextMessage, meta); err != nil {
		res.err = fmt.Sprintf("send start: %v", err)
		return res
	}

	var events streamEvents
	done := make(chan struct{})
	go func() {
		defer close(done)
		events = readEvents(conn)
	}()

	for _, s := range samples {
		data, err := source.EncodeSample(s)
		if err != nil {
			res.err = fmt.Sprintf("encode: %v", err)
			break
		}
		if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
			res.err = fmt.Sprintf("send sample: %v", err)
			break
		}
		res.samples++
		time.Sleep(opts.interval)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"end"}`))
	conn.SetReadDeadline(time.Now().Add(opts.timeout))
	<-done

	res.streamEvents = events
	if res.err == "" {
		res.err = events.readErr
	}
	res.elapsed = time.Since(start)
	return res
}

// readEvents records server events until the server closes the stream.
func readEvents(conn *websocket.Conn) streamEvents {
	var res streamEvents
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				res.readErr = fmt.Sprintf("read: %v", err)
			}
			return res
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var ev radio.Event
		if err = json.Unmarshal(data, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case radio.EventSessionEnded:
			res.sessions++
		case radio.EventTrackReady:
			res.tracks = append(res.tracks, ev.Track)
			res.latencies = append(res.latencies, ev.LatencyMs)
		case radio.EventError:
			res.errors = append(res.errors, ev.Error)
		}
	}
}

func printSummary(out io.Writer, results []streamResult) {
	var failed, sessions, tracks int
	var latencies []float64

	fmt.Fprintf(out, "%-6s %8s %8s %8s %8s %10s\n", "Stream", "Samples", "Sessions", "Tracks", "Errors", "Elapsed")
	for _, r := range results {
		if r.err != "" {
			failed++
		}
		sessions += r.sessions
		tracks += len(r.tracks)
		latencies = append(latencies, r.latencies...)
		fmt.Fprintf(out, "%-6d %8d %8d %8d %8d %10s\n", r.id, r.samples, r.sessions, len(r.tracks), len(r.errors), r.elapsed.Round(time.Millisecond))
		if r.err != "" {
			fmt.Fprintf(out, "       failed: %s\n", r.err)
		}
	}

	fmt.Fprintf(out, "\n=== Replay Results ===\n")
	fmt.Fprintf(out, "Streams failed:  %d/%d\n", failed, len(results))
	fmt.Fprintf(out, "Sessions:        %d\n", sessions)
	fmt.Fprintf(out, "Tracks:          %d\n", tracks)

	if len(latencies) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%-6s %8s %8s %8s\n", "Stage", "p50", "p95", "p99")
	fmt.Fprintf(out, "%-6s %6.0fms %6.0fms %6.0fms\n", "Track", percentile(latencies, 50), percentile(latencies, 95), percentile(latencies, 99))
}

func percentile(data []float64, pct float64) float64 {
	sort.Float64s(data)
	idx := int(math.Ceil(pct/100*float64(len(data)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(data) {
		idx = len(data) - 1
	}
	return data[idx]
}
