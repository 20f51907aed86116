//go:build contentcache_debug

package contentcache

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
