/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kernel

// Canonical identity tokens, one per kind. Entities created by the plain
// constructors carry these; registered subtypes carry their own.
const (
	VertexGUID      = "c4a9b420-edaf-4f8f-96eb-c87fbcc92f2b"
	EdgeGUID        = "1fc6e6e1-9a09-4c0a-985d-758138c49e35"
	WireGUID        = "b99ccd99-6756-401d-ab6c-11162de541a3"
	FaceGUID        = "3b0a6afe-af86-4d96-a30d-a235e9c98475"
	ShellGUID       = "51c1e590-cec9-4e84-8f6b-e4f8c34fd3b3"
	CellGUID        = "8bda6c76-fa5c-4288-9830-80d32d283251"
	CellComplexGUID = "4ec9904b-dc01-42df-9647-2e58c2e08e78"
	ClusterGUID     = "7c498db6-f3e7-4722-be58-9720a4a9c2cc"
	ApertureGUID    = "740d9d31-ca8c-47ce-b932-54d7e4cd1e29"
)

// GUID returns the canonical identity token of kind k, or "" when k is not
// one of the canonical kinds.
func GUID(k Kind) string {
	switch k {
	case KindVertex:
		return VertexGUID
	case KindEdge:
		return EdgeGUID
	case KindWire:
		return WireGUID
	case KindFace:
		return FaceGUID
	case KindShell:
		return ShellGUID
	case KindCell:
		return CellGUID
	case KindCellComplex:
		return CellComplexGUID
	case KindCluster:
		return ClusterGUID
	case KindAperture:
		return ApertureGUID
	default:
		return ""
	}
}
