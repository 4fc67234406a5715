package devmac

import "fmt"

func errLen(field string, n int) error {
	return fmt.Errorf("devmac: %s requires exactly %d bytes", field, n)
}
