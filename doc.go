// Package zipblob assembles store-only ZIP archives in memory from a mapping of file names to file contents.
//
// A Factory computes the CRC-32 and DOS timestamp of each file, lays the entries out in a deterministic order while
// tracking the offset of every local file header, then concatenates the local file headers and bodies, the central
// directory, and the end of central directory record into a single byte slice:
//
//	b, err := zipblob.BuildArchive(map[string][]byte{
//		"Hello.txt":     []byte("Capoo is Hungry."),
//		"FoamCat/a.txt": []byte("Cafe is good."),
//	}, zipblob.WithClock(dostime.FixedTime(time.Now())))
//
// Checksums and clocks are injected (see packages crc and dostime) so that builds can be made reproducible.
// Compression, encryption, comments, extra fields, multi-disk archives, and ZIP64 are not supported.
package zipblob
