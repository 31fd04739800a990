// Command register dials a device, registers an EtherNet/IP session, and
// immediately unregisters it, printing the session handle it was assigned.
// It exercises nothing beyond transport.Client.Connect/Disconnect and is
// useful for checking that a device accepts TCP connections and session
// registration before troubleshooting anything more specific.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"enipgo/transport"
)

func main() {
	address := flag.String("address", "", "device address, host or host:port (default port 0xAF12)")
	timeout := flag.Duration("timeout", 5*time.Second, "connect/transaction timeout")
	flag.Parse()

	if *address == "" {
		log.Fatal("register: -address is required")
	}

	client := transport.NewClient(*address, transport.WithDialTimeout(*timeout))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("REQUESTING registration from %s\n", *address)
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("register: %v", err)
	}
	fmt.Println("session registered")

	fmt.Println("REQUESTING un-registration")
	if err := client.Disconnect(); err != nil {
		log.Fatalf("register: unregister: %v", err)
	}
	fmt.Println("session closed")
}
