// Command identity registers a session with a device, reads its class 1
// (Identity) instance 1 attributes, prints the decoded result, then
// unregisters. Grounded on the read-identity reference example's
// register -> GetAttributeAll(Identity) -> print -> unregister sequence.
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
		log.Fatal("identity: -address is required")
	}

	client := transport.NewClient(*address, transport.WithDialTimeout(*timeout))

	connectCtx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("REQUESTING registration from %s\n", *address)
	if err := client.Connect(connectCtx); err != nil {
		log.Fatalf("identity: %v", err)
	}
	defer client.Disconnect()

	fmt.Println("REQUESTING identity")
	readCtx, readCancel := context.WithTimeout(context.Background(), *timeout)
	defer readCancel()

	id, err := client.ReadIdentity(readCtx)
	if err != nil {
		log.Fatalf("identity: read identity: %v", err)
	}

	fmt.Printf("vendor=0x%04X device_type=0x%04X product_code=0x%04X rev=%d.%d serial=0x%08X\n",
		id.VendorID, id.DeviceType, id.ProductCode, id.RevisionMajor, id.RevisionMinor, id.SerialNumber)
	fmt.Println(id.String())

	fmt.Println("REQUESTING un-registration")
}
