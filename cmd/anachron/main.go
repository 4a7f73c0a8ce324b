// cmd/anachron/main.go
package main

import (
	"anachron/internal/app"
	"anachron/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
