package code_snapshot

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"testing"

	"github.com/zeebo/xxh3"
)

func BenchmarkCacheKeyGeneration(b *testing.B) {
	filePaths := make([]string, 1000)
	charset := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/_-."
	for i := range filePaths {
		length := rand.Intn(100) + 20
		path := make([]byte, length)
		for j := range path {
			path[j] = charset[rand.Intn(len(charset))]
		}
		filePaths[i] = string(path)
	}

	b.Run("MD5", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fmt.Sprintf("%x.cache", md5.Sum([]byte(filePaths[i%1000])))
		}
	})

	b.Run("XXH3", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fmt.Sprintf("%016x.cache", xxh3.HashString(filePaths[i%1000]))
		}
	})
}

func BenchmarkHashContent(b *testing.B) {
	content := make([]byte, 64*1024)
	for i := range content {
		content[i] = byte('a' + (i % 26))
	}

	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hashContent(content)
	}
}
