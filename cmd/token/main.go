// Command token issues a scanner access token signed with the server secret.
//
//	token -operator alice -gate "Gate 4" -s secretKey -t 480
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	var operator, gate string
	args := flagx.FilterArgs(os.Args[1:], []string{"-operator", "-gate"})
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	fs.StringVar(&operator, "operator", "", "operator name (token subject)")
	fs.StringVar(&gate, "gate", "", "gate the token is issued for")
	_ = fs.Parse(args)

	if operator == "" {
		log.Fatal("-operator is required")
	}

	token, err := auth.GenerateToken(operator, gate, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(token)

}
