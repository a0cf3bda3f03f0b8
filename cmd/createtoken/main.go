package main

import (
	"fmt"
	"log"
	"os"

	"deskhive.com/deskhive/security"
)

func main() {
	secret := os.Getenv("DESKHIVE_SIGNING_SECRET")
	if secret == "" {
		log.Fatal("DESKHIVE_SIGNING_SECRET is not set")
	}

	token, err := security.CreateIdentityToken(&security.ServiceIdentity{
		Id:       1,
		UserName: "backoffice-cli",
		Provider: "local",
	}, secret, 3600)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}
