package main

import (
	"fmt"
	"log"
	"os"

	"ShopMaint_Backend/config"
	"ShopMaint_Backend/db"
	"ShopMaint_Backend/router"
)

func main() {
	config.Load()

	if err := os.MkdirAll(config.C.UploadDir, 0o755); err != nil {
		log.Fatalf("create upload dir failed: %v", err)
	}

	d, err := db.Connect()
	if err != nil {
		log.Fatalf("connect db failed: %v", err)
	}
	if err := db.SeedMachineCategories(d); err != nil {
		log.Fatalf("seed categories failed: %v", err)
	}

	r := router.Setup()
	addr := fmt.Sprintf(":%s", config.C.AppPort)
	log.Printf("listening on %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
