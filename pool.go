package scy

import (
	"bytes"
	"sync"
)

// bufferPool 为字符串字面量解码和 AST dump 复用缓冲区.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer drops oversized buffers instead of pinning them in the pool.
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64<<10 {
		return
	}
	bufferPool.Put(buf)
}
