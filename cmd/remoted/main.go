// remoted - HTTP control daemon and CLI for a host application
package main

import "github.com/getremoted/remoted/pkg/cli"

func main() {
	cli.Execute()
}
