package model

// Block is a fetched block body. Extrinsics hold the payload of each
// extrinsic as served by the node, in block order.
type Block struct {
	Hash       string
	Number     uint64
	Extrinsics [][]byte
}
