// Command sign prints the X-Grd-Signature value for a request body, and can
// mint a bearer token for GET /stats.
//
//	sign -secret "$HMAC_SECRET" < record.json
//	sign -file record.json            # secret from HMAC_SECRET
//	sign -stats-token -subject ops    # secret from STATS_JWT_SECRET
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"pokeproxy/internal/auth"
	"pokeproxy/internal/signature"
)

func main() {
	_ = godotenv.Load()

	var (
		secret     = flag.String("secret", os.Getenv("HMAC_SECRET"), "base64 HMAC secret")
		file       = flag.String("file", "", "body file (default stdin)")
		statsToken = flag.Bool("stats-token", false, "print a /stats bearer token instead of a signature")
		subject    = flag.String("subject", "operator", "token subject")
		ttl        = flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	)
	flag.Parse()

	if *statsToken {
		a, err := auth.New(os.Getenv("STATS_JWT_SECRET"), nil)
		if err != nil {
			log.Fatal(err)
		}
		token, err := a.GenerateJWT(*subject, "stats:read", *ttl)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		return
	}

	if *secret == "" {
		log.Fatal("no secret: pass -secret or set HMAC_SECRET")
	}

	var in io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	body, err := io.ReadAll(in)
	if err != nil {
		log.Fatal(err)
	}

	sig, err := signature.Sign(body, *secret)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sig)
}
