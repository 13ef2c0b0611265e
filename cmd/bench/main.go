// bench - MessageScript codec throughput microbenchmark
//
// Exercises the token codec and the container Lower/Write/Read/Lift
// pipeline against a handful of synthetic scripts and reports encode/
// decode throughput.
//
// Output: CSV and markdown summary, plus a one-line-per-case summary to
// stdout.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ashfall/msgscript/msgscript"
	"github.com/ashfall/msgscript/container"
)

type CaseResult struct {
	Name           string
	Lines          int
	EncodedBytes   int
	EncodeNsPerOp  float64
	DecodeNsPerOp  float64
	ContainerBytes int
	LowerWriteNs   float64
	ReadLiftNs     float64
}

const iterations = 2000

func main() {
	cases := []struct {
		name  string
		build func() *msgscript.Script
	}{
		{"small_dialogue", buildSmallDialogue},
		{"long_lines", buildLongLines},
		{"function_heavy", buildFunctionHeavy},
		{"selection_window", buildSelectionWindow},
	}

	var results []CaseResult
	for _, c := range cases {
		results = append(results, benchCase(c.name, c.build))
	}

	csvPath := "bench_results.csv"
	if f, err := os.Create(csvPath); err == nil {
		writeCSV(f, results)
		f.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := "BENCH.md"
	if f, err := os.Create(mdPath); err == nil {
		writeMarkdown(f, results)
		f.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	for _, r := range results {
		fmt.Printf("%-18s encode=%.0fns/op decode=%.0fns/op lower+write=%.0fns/op read+lift=%.0fns/op\n",
			r.Name, r.EncodeNsPerOp, r.DecodeNsPerOp, r.LowerWriteNs, r.ReadLiftNs)
	}
}

func benchCase(name string, build func() *msgscript.Script) CaseResult {
	script := build()
	lines := countLines(script)

	encoded, encodeNs := benchEncode(script)
	_ = benchDecode(encoded)
	decodeNs := benchDecodeTimed(encoded)

	containerBytes, lowerWriteNs := benchLowerWrite(script)
	readLiftNs := benchReadLift(containerBytes)

	return CaseResult{
		Name:           name,
		Lines:          lines,
		EncodedBytes:   sumEncodedBytes(encoded),
		EncodeNsPerOp:  encodeNs,
		DecodeNsPerOp:  decodeNs,
		ContainerBytes: len(containerBytes),
		LowerWriteNs:   lowerWriteNs,
		ReadLiftNs:     readLiftNs,
	}
}

func countLines(script *msgscript.Script) int {
	n := 0
	for _, w := range script.Windows {
		switch win := w.(type) {
		case *msgscript.DialogueWindow:
			n += len(win.Lines)
		case *msgscript.SelectionWindow:
			n += len(win.Lines)
		}
	}
	return n
}

func allLines(script *msgscript.Script) []msgscript.Line {
	var lines []msgscript.Line
	for _, w := range script.Windows {
		switch win := w.(type) {
		case *msgscript.DialogueWindow:
			lines = append(lines, win.Lines...)
		case *msgscript.SelectionWindow:
			lines = append(lines, win.Lines...)
		}
	}
	return lines
}

func benchEncode(script *msgscript.Script) ([][]byte, float64) {
	lines := allLines(script)
	encoded := make([][]byte, len(lines))

	start := time.Now()
	for iter := 0; iter < iterations; iter++ {
		for i, l := range lines {
			buf, err := msgscript.EncodeLine(l)
			if err != nil {
				fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
				continue
			}
			encoded[i] = buf
		}
	}
	elapsed := time.Since(start)
	ops := iterations * len(lines)
	if ops == 0 {
		return encoded, 0
	}
	return encoded, float64(elapsed.Nanoseconds()) / float64(ops)
}

func benchDecode(encoded [][]byte) []msgscript.Line {
	lines := make([]msgscript.Line, len(encoded))
	for i, buf := range encoded {
		l, _, err := msgscript.DecodeLine(buf, 0)
		if err != nil {
			continue
		}
		lines[i] = l
	}
	return lines
}

func benchDecodeTimed(encoded [][]byte) float64 {
	if len(encoded) == 0 {
		return 0
	}
	start := time.Now()
	for iter := 0; iter < iterations; iter++ {
		for _, buf := range encoded {
			if _, _, err := msgscript.DecodeLine(buf, 0); err != nil {
				fmt.Fprintf(os.Stderr, "decode error: %v\n", err)
			}
		}
	}
	elapsed := time.Since(start)
	return float64(elapsed.Nanoseconds()) / float64(iterations*len(encoded))
}

func sumEncodedBytes(encoded [][]byte) int {
	n := 0
	for _, b := range encoded {
		n += len(b)
	}
	return n
}

func benchLowerWrite(script *msgscript.Script) ([]byte, float64) {
	var buf bytes.Buffer
	w := container.NewWriter()
	start := time.Now()
	for iter := 0; iter < iterations; iter++ {
		buf.Reset()
		if err := w.WriteScript(&buf, script); err != nil {
			fmt.Fprintf(os.Stderr, "lower+write error: %v\n", err)
		}
	}
	elapsed := time.Since(start)
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, float64(elapsed.Nanoseconds()) / float64(iterations)
}

func benchReadLift(containerBytes []byte) float64 {
	if len(containerBytes) == 0 {
		return 0
	}
	start := time.Now()
	for iter := 0; iter < iterations; iter++ {
		raw, err := container.NewReader(bytes.NewReader(containerBytes)).Read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			continue
		}
		if _, err := container.Lift(raw); err != nil {
			fmt.Fprintf(os.Stderr, "lift error: %v\n", err)
		}
	}
	elapsed := time.Since(start)
	return float64(elapsed.Nanoseconds()) / float64(iterations)
}

func buildSmallDialogue() *msgscript.Script {
	return &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "greet",
				Speaker:    msgscript.NamedSpeaker(msgscript.Line{msgscript.TextToken([]byte("Kestrel"))}),
				Lines: []msgscript.Line{
					{msgscript.TextToken([]byte("Hi")), msgscript.NewLineTok(), msgscript.TextToken([]byte("there"))},
				},
			},
		},
	}
}

func buildLongLines() *msgscript.Script {
	text := bytes.Repeat([]byte("The wind carries news from the eastern ridge. "), 20)
	return &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{
				Identifier: "monologue",
				Lines: []msgscript.Line{
					{msgscript.TextToken(text)},
					{msgscript.TextToken(text), msgscript.NewLineTok(), msgscript.TextToken(text)},
				},
			},
		},
	}
}

func buildFunctionHeavy() *msgscript.Script {
	lines := make([]msgscript.Line, 0, 32)
	for i := 0; i < 32; i++ {
		lines = append(lines, msgscript.Line{
			msgscript.FunctionToken(0, uint8(i%8), []int16{int16(i), int16(i * 2)}),
			msgscript.TextToken([]byte("ok")),
		})
	}
	return &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.DialogueWindow{Identifier: "quest_flags", Lines: lines},
		},
	}
}

func buildSelectionWindow() *msgscript.Script {
	return &msgscript.Script{
		Windows: []msgscript.Window{
			&msgscript.SelectionWindow{
				Identifier: "choice",
				Lines: []msgscript.Line{
					{msgscript.TextToken([]byte("Accept"))},
					{msgscript.TextToken([]byte("Decline"))},
					{msgscript.TextToken([]byte("Ask again"))},
				},
			},
		},
	}
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,lines,encoded_bytes,encode_ns_per_op,decode_ns_per_op,container_bytes,lower_write_ns,read_lift_ns")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%.1f,%.1f,%d,%.1f,%.1f\n",
			r.Name, r.Lines, r.EncodedBytes, r.EncodeNsPerOp, r.DecodeNsPerOp,
			r.ContainerBytes, r.LowerWriteNs, r.ReadLiftNs)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult) {
	fmt.Fprintf(w, "# MessageScript Codec Benchmark\n\n")
	fmt.Fprintf(w, "| case | lines | encoded bytes | encode ns/op | decode ns/op | container bytes | lower+write ns/op | read+lift ns/op |\n")
	fmt.Fprintf(w, "|---|---|---|---|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %.1f | %.1f | %d | %.1f | %.1f |\n",
			r.Name, r.Lines, r.EncodedBytes, r.EncodeNsPerOp, r.DecodeNsPerOp,
			r.ContainerBytes, r.LowerWriteNs, r.ReadLiftNs)
	}
}
