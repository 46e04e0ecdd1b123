// Command hashgen produces the bcrypt passphrase hash expected by
// STEGOSIGHT_SERVER_PASSPHRASE_HASH.
//
// Usage:
//
//	hashgen 'my passphrase'
package main

import (
	"fmt"
	"os"

	"github.com/stegosight/stegosight/internal/service/auth"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hashgen <passphrase>")
		os.Exit(2)
	}

	hash, err := auth.HashPassphrase(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashgen: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
