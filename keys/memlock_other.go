//go:build !unix

package keys

// Lock is a no-op on platforms without mlock.
func (sk *SecretKey) Lock() (unlock func()) { return func() {} }
