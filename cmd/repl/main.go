package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/conuredb/rosterdb/pkg/repl"
)

func main() {
	serverFlag := flag.String("server", "http://127.0.0.1:8081", "HTTP base URL for the server (replicated mode)")
	historyFlag := flag.String("history", "", "readline history file")
	flag.Parse()

	base, err := url.Parse(*serverFlag)
	if err != nil {
		fmt.Printf("Invalid --server URL: %v\n", err)
		os.Exit(1)
	}
	client := &RemoteClient{HTTP: &http.Client{Timeout: 10 * time.Second}, Base: base}

	rl, err := repl.NewReader(*historyFlag)
	if err != nil {
		fmt.Printf("Error starting readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("RosterDB - student roster over a replicated B-tree")
	fmt.Println("Type 'help' for available commands")
	fmt.Printf("Using remote server: %s\n", base)
	if err := repl.New(client, rl.Stdout()).Run(rl); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
