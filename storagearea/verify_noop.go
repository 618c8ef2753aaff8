//go:build !areaverify

package storagearea

// verifyEnabled mirrors verify.go's constant when the areaverify build tag
// is absent, so adapters can branch on it without a second build-tagged
// call site.
const verifyEnabled = false

// VerifyGeometry is a no-op without the areaverify build tag.
func VerifyGeometry(d Descriptor, mediumWriteBlock, mediumErasePage uint32, mediumExtent int64) error {
	return nil
}
