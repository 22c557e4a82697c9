// Package client provides Go clients for the icakad short-link and paste services.
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/icakad/icakad-go/client"
//	)
//
//	func main() {
//		links, err := client.NewShortURLClient(client.WithToken("secret"))
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if _, err := links.Add(context.Background(), "docs", "https://example.com/docs"); err != nil {
//			log.Fatal(err)
//		}
//
//		all, err := links.List(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, e := range all.Entries() {
//			fmt.Println(e.Slug, e.URL)
//		}
//	}
//
// # Pastes
//
//	pastes, _ := client.NewPasteClient()
//	created, err := pastes.Create(ctx, "hello", client.CreateOptions{Title: "greeting"})
//	text, err := pastes.FetchRaw(ctx, "abc123")
//	record, err := pastes.Fetch(ctx, "abc123") // text plus listing metadata
//
// # Responses
//
// Every response goes through Normalize. A status >= 400 always becomes an
// error carrying the status and the body; a successful response declared as
// JSON must parse. Successful payloads are returned as *Body, which keeps the
// raw bytes and marshals back to the same JSON.
//
// Short-link listings come in several shapes ({"items": [...]}, {"data": [...]},
// {"list": [...]}, a bare array, or a plain slug -> url object). List flattens
// all of them with FlattenListing.
//
// # Error Handling
//
//	_, err := links.Delete(ctx, "docs")
//	if client.IsNotFound(err) {
//		// slug does not exist
//	}
//	if client.IsTransport(err) {
//		// no response, e.g. a timeout
//	}
//	var se *client.ShortURLError
//	if errors.As(err, &se) {
//		fmt.Println(se.Status, se.Payload)
//	}
//
// Clients may be reused sequentially. Use one client per goroutine when
// calling concurrently.
package client
