package main

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/console"
)

func main() {

	ctx := context.Background()
	console.NewApp().Run(ctx)

}
