//go:build unix

package keys

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mlock does not nest: one munlock releases a page however many secrets
// were locked on it. lockedPages counts the live locks per page so a page
// is only unlocked once the last secret on it is released.
var (
	pageMu      sync.Mutex
	lockedPages = map[uintptr]int{}
)

// Lock pins the pages holding sk in RAM so the secret is not written to swap.
// sk must not live on the stack. The returned func releases the lock.
//
// Lock is best effort. When the process lacks RLIMIT_MEMLOCK headroom it
// does nothing. It covers only the bytes behind sk: copies of the secret
// made by value, such as the intermediates of derivation and signing, are
// not locked.
func (sk *SecretKey) Lock() (unlock func()) {
	b := sk[:]
	pageMu.Lock()
	defer pageMu.Unlock()
	if err := unix.Mlock(b); err != nil {
		return func() {}
	}
	spans := pageSpans(b)
	for _, s := range spans {
		lockedPages[s.page]++
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			pageMu.Lock()
			defer pageMu.Unlock()
			for _, s := range spans {
				lockedPages[s.page]--
				if lockedPages[s.page] > 0 {
					continue
				}
				delete(lockedPages, s.page)
				_ = unix.Munlock(s.b)
			}
		})
	}
}

type pageSpan struct {
	page uintptr
	b    []byte
}

// pageSpans splits b at page boundaries.
func pageSpans(b []byte) []pageSpan {
	size := uintptr(os.Getpagesize())
	var spans []pageSpan
	for len(b) > 0 {
		addr := uintptr(unsafe.Pointer(&b[0]))
		page := addr &^ (size - 1)
		n := int(page + size - addr)
		if n > len(b) {
			n = len(b)
		}
		spans = append(spans, pageSpan{page: page, b: b[:n]})
		b = b[n:]
	}
	return spans
}
