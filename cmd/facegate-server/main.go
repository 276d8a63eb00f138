// @title Facegate API
// @version 1.0
// @description Face verification gateway bridging identity providers behind one canonical result contract
// @host localhost:8080
// @BasePath /api
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"facegate-server-go/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [Bootstrap] starting facegate-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "facegate-server failed: %v\n", err)
		os.Exit(1)
	}
}
