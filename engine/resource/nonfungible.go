package resource

// NonFungible is a keyed record belonging to a resource class: immutable
// data fixed at mint time, and mutable data that an authorized badge may
// update later. The authoritative copy lives in the Track,
// indexed by (resource_address, non_fungible_key); a container's key-set
// only records membership.
type NonFungible struct {
	Immutable []byte
	Mutable   []byte
}

// Clone returns a deep copy so Track snapshots can't alias caller buffers.
func (n NonFungible) Clone() NonFungible {
	out := NonFungible{
		Immutable: append([]byte(nil), n.Immutable...),
		Mutable:   append([]byte(nil), n.Mutable...),
	}
	return out
}

// UpdateMutableData replaces the mutable portion, after the caller has
// already checked check_update_non_fungible_mutable_data_auth against the
// owning ResourceDef.
func (n *NonFungible) UpdateMutableData(data []byte) {
	n.Mutable = append([]byte(nil), data...)
}
