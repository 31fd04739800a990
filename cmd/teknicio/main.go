// Command teknicio reads a Teknic ClearLink status input assembly and
// optionally writes its digital output assembly. Grounded on the
// read-teknic-io reference example: register -> GetAttributeSingle(class
// 0x04, instance 0x66, attribute 3) for the input assembly, then an
// optional SetAttributeSingle(class 0x04, instance 0x70, attribute 3) to
// drive the output assembly -> unregister.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"enipgo/cip"
	"enipgo/objects"
	"enipgo/transport"
)

// clearLinkInputClass/inputInstance address the ClearLink's status input
// assembly; clearLinkOutputInstance addresses the digital output assembly.
// Both share class 0x04 (Assembly) and attribute 3 (Data), matching the
// reference example's CipPath::new_full calls.
const (
	clearLinkAssemblyClass  = 0x04
	clearLinkInputInstance  = 0x66
	clearLinkOutputInstance = 0x70
	clearLinkAttribute      = 0x03
)

func main() {
	address := flag.String("address", "", "device address, host or host:port (default port 0xAF12)")
	timeout := flag.Duration("timeout", 5*time.Second, "connect/transaction timeout")
	setOutput := flag.Int("set-output", -1, "digital output index (0-5) to write, -1 to skip writing")
	outputState := flag.Bool("state", true, "state to write when -set-output is given")
	flag.Parse()

	if *address == "" {
		log.Fatal("teknicio: -address is required")
	}

	client := transport.NewClient(*address, transport.WithDialTimeout(*timeout))

	connectCtx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("REQUESTING registration from %s\n", *address)
	if err := client.Connect(connectCtx); err != nil {
		log.Fatalf("teknicio: %v", err)
	}
	defer client.Disconnect()

	fmt.Println("REQUESTING status input assembly")
	readCtx, readCancel := context.WithTimeout(context.Background(), *timeout)
	defer readCancel()

	inputPath := cip.NewFullPath(clearLinkAssemblyClass, clearLinkInputInstance, clearLinkAttribute)
	raw, err := client.GetAttributeSingle(readCtx, inputPath)
	if err != nil {
		log.Fatalf("teknicio: read input assembly: %v", err)
	}

	fmt.Printf("input assembly (%d bytes): % X\n", len(raw), raw)

	if *setOutput >= 0 {
		fmt.Println("REQUESTING digital output write")
		outputs := objects.ClearLinkOutputData{}
		switch *setOutput {
		case 0:
			outputs.DigitalOutputs.Output0 = *outputState
		case 1:
			outputs.DigitalOutputs.Output1 = *outputState
		case 2:
			outputs.DigitalOutputs.Output2 = *outputState
		case 3:
			outputs.DigitalOutputs.Output3 = *outputState
		case 4:
			outputs.DigitalOutputs.Output4 = *outputState
		case 5:
			outputs.DigitalOutputs.Output5 = *outputState
		default:
			log.Fatalf("teknicio: -set-output must be 0-5, got %d", *setOutput)
		}

		data, err := outputs.MarshalCIP()
		if err != nil {
			log.Fatalf("teknicio: encode output assembly: %v", err)
		}

		writeCtx, writeCancel := context.WithTimeout(context.Background(), *timeout)
		defer writeCancel()

		outputPath := cip.NewFullPath(clearLinkAssemblyClass, clearLinkOutputInstance, clearLinkAttribute)
		if err := client.SetAttributeSingle(writeCtx, outputPath, data); err != nil {
			log.Fatalf("teknicio: write output assembly: %v", err)
		}
		fmt.Println("output assembly written")
	}

	fmt.Println("REQUESTING un-registration")
}
