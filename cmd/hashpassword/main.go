// Command hashpassword prints the bcrypt hash to use as
// RETREATREG_ADMIN_PASSWORD_HASH. The password is read from the first
// line of standard input.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dalemusser/retreatreg/internal/app/system/authutil"
)

func main() {
	fmt.Fprintln(os.Stderr, authutil.PasswordRules())
	fmt.Fprint(os.Stderr, "Password: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read password: %v", err)
	}
	pw := strings.TrimRight(line, "\r\n")

	if err := authutil.ValidatePassword(pw); err != nil {
		log.Fatal(err)
	}
	hash, err := authutil.HashPassword(pw)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
