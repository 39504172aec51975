// Package format defines the binary layout of a vault file.
//
// Layout (61-byte fixed header followed by the ciphertext):
//
//	[4]  magic "SVLT"
//	[1]  format version
//	[32] salt
//	[4]  memory cost (uint32, little endian)
//	[4]  time cost (uint32, little endian)
//	[4]  parallelism (uint32, little endian)
//	[12] nonce
//	[N]  ciphertext + 16-byte GCM tag
//
// The header is stored in the clear. Decode validates structure only; it
// never attempts decryption.
package format
