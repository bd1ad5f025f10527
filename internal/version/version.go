// ABOUTME: Version information for the monad player
// ABOUTME: Product identity reported in logs and -version output
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the product name
	Product = "Monad Player"

	// Manufacturer is the publisher name
	Manufacturer = "Monad"
)
