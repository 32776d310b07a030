package inproc

import "fmt"

func errNoChannel(iface string, peer any) error {
	return fmt.Errorf("inproc: no %s channel registered for %v", iface, peer)
}
