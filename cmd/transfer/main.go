package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ssgl/ourtransfer/pkg/transfer/client"
)

func main() {
	server := flag.String("server", "http://localhost:4000", "OurTransfer server base URL")
	username := flag.String("username", "", "Login username")
	password := flag.String("password", "", "Login password")
	token := flag.String("token", "", "Access token (skips login)")
	filePath := flag.String("file", "", "File to send")
	name := flag.String("name", "", "Display filename (defaults to the file's base name)")
	quiet := flag.Bool("quiet", false, "Only print the share link")

	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		log.Fatal("File path is required")
	}
	if *token == "" && *username == "" {
		*username = os.Getenv("TRANSFER_USERNAME")
		*password = os.Getenv("TRANSFER_PASSWORD")
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		log.Fatalf("Failed to stat file: %v", err)
	}

	filename := *name
	if filename == "" {
		filename = filepath.Base(*filePath)
	}
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Ctrl-C aborts whichever phase is in flight.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []client.Option{}
	if *token != "" {
		opts = append(opts, client.WithToken(*token))
	}
	if !*quiet {
		opts = append(opts,
			client.WithStateFunc(func(s client.State) {
				fmt.Printf("[%s]\n", s)
			}),
			client.WithProgressFunc(func(fraction float64) {
				fmt.Printf("\r  %3.0f%%", fraction*100)
				if fraction >= 1 {
					fmt.Println()
				}
			}),
		)
	}

	c := client.New(strings.TrimRight(*server, "/"), opts...)

	if *token == "" {
		if *username == "" {
			log.Fatal("Username and password (or -token) are required")
		}
		if err := c.Login(ctx, *username, *password); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
	}

	startTime := time.Now()
	result, err := c.Send(ctx, filename, contentType, info.Size(), file)
	if err != nil {
		log.Fatalf("Transfer failed: %v", err)
	}

	if *quiet {
		fmt.Println(result.ShareLink)
		return
	}
	fmt.Printf("Sent %s (%d bytes) in %v\n", filename, info.Size(), time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("Share link (valid 24h): %s\n", result.ShareLink)
}
