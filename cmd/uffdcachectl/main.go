// Command uffdcachectl demonstrates and monitors a uffdcache.Cache from the
// command line.
package main

import "github.com/ashlandtech/uffdcache/cmd/uffdcachectl/cmd"

func main() {
	cmd.Execute()
}
