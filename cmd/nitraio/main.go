// Command nitraio reads a Nitra valve bank's status byte and optionally sets
// or clears one of its 16 solenoid outputs. Grounded on the write-nitra-io
// reference example: register -> GetAttributeSingle(class 0x04, instance
// 101, attribute 3) for the status byte -> SetAttributeSingle(class 0x04,
// instance 100, attribute 3) to drive the solenoid bank -> unregister.
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

const (
	nitraAssemblyClass  = 0x04
	nitraOutputInstance = 100
	nitraStatusInstance = 101
	nitraAttribute      = 0x03
)

func main() {
	address := flag.String("address", "", "device address, host or host:port (default port 0xAF12)")
	timeout := flag.Duration("timeout", 5*time.Second, "connect/transaction timeout")
	valve := flag.Int("valve", -1, "solenoid valve index (0-15) to set, -1 to skip writing")
	state := flag.Bool("state", true, "state to write when -valve is given")
	flag.Parse()

	if *address == "" {
		log.Fatal("nitraio: -address is required")
	}

	client := transport.NewClient(*address, transport.WithDialTimeout(*timeout))

	connectCtx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("REQUESTING - REGISTER session to %s\n", *address)
	if err := client.Connect(connectCtx); err != nil {
		log.Fatalf("nitraio: %v", err)
	}
	defer client.Disconnect()

	fmt.Println("REQUESTING - GET Nitra Status")
	readCtx, readCancel := context.WithTimeout(context.Background(), *timeout)
	defer readCancel()

	statusPath := cip.NewFullPath(nitraAssemblyClass, nitraStatusInstance, nitraAttribute)
	raw, err := client.GetAttributeSingle(readCtx, statusPath)
	if err != nil {
		log.Fatalf("nitraio: read status byte: %v", err)
	}

	var status objects.NitraStatusByte
	if _, err := status.UnmarshalCIP(raw); err != nil {
		log.Fatalf("nitraio: decode status byte: %v", err)
	}
	fmt.Printf("status byte: 0x%02X\n", status.Value)

	if *valve >= 0 {
		fmt.Println("REQUESTING - SET Solenoid Valve Output")
		var valves objects.SolenoidValves
		valves.SetValve(*valve, *state)

		data, err := valves.MarshalCIP()
		if err != nil {
			log.Fatalf("nitraio: encode solenoid valves: %v", err)
		}

		writeCtx, writeCancel := context.WithTimeout(context.Background(), *timeout)
		defer writeCancel()

		outputPath := cip.NewFullPath(nitraAssemblyClass, nitraOutputInstance, nitraAttribute)
		if err := client.SetAttributeSingle(writeCtx, outputPath, data); err != nil {
			log.Fatalf("nitraio: write solenoid valves: %v", err)
		}
		fmt.Println("solenoid output written")
	}

	fmt.Println("REQUESTING - UN REGISTER session")
}
