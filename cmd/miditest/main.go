package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	wmidi "go-wavesynth/midi"
	"go-wavesynth/wavetable"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	arg := ""
	if len(os.Args) > 2 {
		arg = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "send":
		sendScale(arg)
	case "listen":
		listen(arg)
	case "serial":
		dumpSerial(arg)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list             - List all MIDI ports")
	fmt.Println("  send [port]      - Play a C major scale on an output port")
	fmt.Println("  listen [port]    - Print Note On/Off events from an input port")
	fmt.Println("  serial <device>  - Print events parsed from a 31250 baud serial line")
	fmt.Println("  poll             - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! Port listing is hung.")
	}
}

func matches(name, want string) bool {
	return want == "" || strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

func sendScale(want string) {
	var outPort drivers.Out
	for _, p := range midi.GetOutPorts() {
		if matches(p.String(), want) {
			outPort = p
			break
		}
	}
	if outPort == nil {
		fmt.Println("No matching output port")
		return
	}

	fmt.Printf("Using output: %s\n", outPort.String())

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	// C4 major scale, then a velocity 0 Note On to exercise that release path
	for _, note := range []uint8{48, 50, 52, 53, 55, 57, 59, 60} {
		n, _ := wavetable.FromMIDI(note)
		fmt.Printf("  %-3s %8.2f Hz\n", n, n.Hz())
		if err := send(midi.NoteOn(0, note, 100)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		time.Sleep(250 * time.Millisecond)
		send(midi.NoteOff(0, note))
	}
	send(midi.NoteOn(0, 60, 100))
	time.Sleep(500 * time.Millisecond)
	send(midi.NoteOn(0, 60, 0))

	fmt.Println("Done!")
}

func listen(want string) {
	var inPort drivers.In
	for _, p := range midi.GetInPorts() {
		if matches(p.String(), want) {
			inPort = p
			break
		}
	}
	if inPort == nil {
		fmt.Println("No matching input port")
		return
	}

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", inPort.String())
	q, recv := newPrinter()

	in, err := wmidi.NewPortInput(inPort.String(), inPort, recv)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	printEvents(ctx, q)
	fmt.Printf("\n%d messages, %+v\n", in.Messages(), recv.Stats())
}

func dumpSerial(device string) {
	if device == "" {
		fmt.Println("serial needs a device, e.g. /dev/ttyUSB0")
		return
	}

	port, err := wmidi.OpenSerial(device, wmidi.BaudRate)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer port.Close()

	fmt.Printf("Reading %s at %d baud. Ctrl+C to exit.\n", port, wmidi.BaudRate)
	q, recv := newPrinter()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go wmidi.Pump(ctx, port, recv)
	printEvents(ctx, q)
	fmt.Printf("\n%+v dropped=%d\n", recv.Stats(), q.Dropped())
}

// newPrinter returns a queue and a receiver feeding it without echo. The
// receiver is only written from one goroutine.
func newPrinter() (*wmidi.Queue, *wmidi.Receiver) {
	q := wmidi.NewQueue(64)
	return q, wmidi.NewReceiver(q, nil)
}

func printEvents(ctx context.Context, q *wmidi.Queue) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Drain(func(ev wmidi.Event) {
				name := "--"
				if n, ok := wavetable.FromMIDI(ev.Note()); ok {
					name = n.String()
				}
				fmt.Printf("[%s] % X  %-4s %s\n", time.Now().Format("15:04:05.000"), ev.Bytes(), name, ev.Message())
			})
		}
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a MIDI device to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
