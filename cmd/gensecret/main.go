// Prints random hex secret suitable for booklend --secret-key
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/nkiryanov/booklend/internal/service/auth/tokenmanager"
)

func main() {
	b := make([]byte, tokenmanager.MinSecretKeyLength)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
