package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

// Prints a value suitable for SESSION_JWT_SECRET.
func main() {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(buf))
}
