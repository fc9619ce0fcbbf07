package scy

import "unsafe"

// bytesToString 将字节切片转换为字符串, 不进行内存分配.
// 只用于读取后不再修改的缓冲区: 词法分析得到的 Lexeme 和标识符会直接引用它.
func bytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
