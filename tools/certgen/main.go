// Package main writes a development CA and server certificate under
// ./certs for serving the API over HTTPS locally.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/vlinky/vlinky/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	var list []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			list = append(list, h)
		}
	}
	if err := certgen.WriteBundle(*dir, list); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
	fmt.Printf("Server: TLS_CERT_FILE=%s/%s TLS_KEY_FILE=%s/%s\n", *dir, certgen.ServerCertFile, *dir, certgen.ServerKeyFile)
	fmt.Printf("Client: -ca %s/%s\n", *dir, certgen.CACertFile)
}
