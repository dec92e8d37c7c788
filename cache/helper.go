package cache

import "fmt"

const (
	cacheCities = "cities:%s"
)

func constructKeyCities(scope string) string {
	return fmt.Sprintf(cacheCities, scope)
}
