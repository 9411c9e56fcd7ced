// Command hashpin prints the bcrypt hash to put in OPERATOR_PIN_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"redbull-counter-backend/internal/middleware"
)

func main() {
	var pin string
	if len(os.Args) > 1 {
		pin = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "Operator PIN: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		pin = strings.TrimSpace(line)
	}
	if len(pin) < 4 {
		fmt.Fprintln(os.Stderr, "PIN must be at least 4 characters")
		os.Exit(1)
	}

	hash, err := middleware.HashPIN(pin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash PIN: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
