// README: carrentalctl entry point; rental desk tooling.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
