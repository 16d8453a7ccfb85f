// Command mockgateway runs the in-memory payment gateway simulator as a
// standalone HTTP server, for developing the test suite against without a real
// sandbox.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/openpayments/mandate-contract-tests/mockgateway"
)

func main() {
	var port int
	var apiKey string

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.IntVar(&port, "port", 8288, "port to listen on")
	fs.StringVar(&apiKey, "api-key", "", "API key to require; empty disables auth")
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	service := mockgateway.New(apiKey, log)
	addr := fmt.Sprintf(":%d", port)
	log.WithField("addr", addr).Info("mock gateway listening")
	if err := http.ListenAndServe(addr, service.Handler()); err != nil {
		log.Fatal(err)
	}
}
