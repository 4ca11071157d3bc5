/*
Package emojimaker composes emoji images out of layered parts. A gallery holds
the available layers of every category (head, eyes, eyebrows, mouth and details),
a selection picks at most one layer per category, and the compositor flattens
the selected layers over a canvas in a fixed paint order.

The package provides a command line interface, which can render a selection
to a file, shuffle a batch of composites, open a preview window or serve the
gallery page over HTTP. To check the supported commands type:

	$ emojimaker --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"
		"os"

		"github.com/esimov/emojimaker"
	)

	func main() {
		g, err := emojimaker.LoadGallery(os.DirFS("assets"))
		if err != nil {
			fmt.Printf("Error loading the gallery: %s", err.Error())
			return
		}
		c := emojimaker.NewCompositor(emojimaker.DefaultSize, emojimaker.DefaultSize)
		sel := emojimaker.ParseQuery("?eyes=0&head=1&mouth=2")

		if err := c.Process(context.Background(), sel, g, os.Stdout, emojimaker.PNG); err != nil {
			fmt.Printf("Error composing the emoji: %s", err.Error())
		}
	}
*/
package emojimaker
