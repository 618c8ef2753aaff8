package checksum

import "hash/crc32"

// ieeeTable is the standard CRC-32 (IEEE 802.3) polynomial, reflected form
// 0xEDB88320. This is the checksum mandated by the record frame format.
// Callers start from 0; hash/crc32 inverts the running value on entry and
// on exit, so the result is the usual zlib CRC-32 (0xCBF43926 for
// "123456789"), with no masking.
var ieeeTable = crc32.MakeTable(crc32.IEEE)

// IEEE computes the CRC-32/IEEE checksum of data.
func IEEE(data []byte) uint32 {
	return crc32.Checksum(data, ieeeTable)
}

// IEEEUpdate extends a running CRC-32/IEEE checksum with additional data,
// where crc is the checksum returned by a previous call to IEEE or
// IEEEUpdate. This lets callers fold a frame's several spans (header tail,
// iovec payload spans) into one checksum without concatenating them first.
func IEEEUpdate(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, ieeeTable, data)
}
