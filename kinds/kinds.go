package kinds

const (
	length   = 64
	idLength = 8
	depthMax = length / idLength
	idMask   = (1 << idLength) - 1
)

// Kind packs id together with every id already packed into bases,
// skipping duplicates, so that IsKind can match any ancestor.
func Kind(id uint64, bases ...uint64) uint64 {
	kind := id & idMask
	seen := map[uint64]struct{}{}
	for _, base := range bases {
		for j := 0; j < depthMax; j++ {
			baseId := (base >> (idLength * j)) & idMask
			if baseId == 0 {
				break
			}
			if _, ok := seen[baseId]; ok {
				continue
			}
			seen[baseId] = struct{}{}
			kind |= baseId << (idLength * len(seen))
		}
	}
	return kind
}

// IsKind reports whether kind is, or derives from, any of bases.
func IsKind(kind uint64, bases ...uint64) bool {
	for _, base := range bases {
		baseId := base & idMask
		if kind == baseId {
			return true
		}
		for i := 0; i < depthMax; i++ {
			if (kind>>(idLength*i))&idMask == baseId {
				return true
			}
		}
	}
	return false
}

// String names the most specific kind known to this package.
func String(kind uint64) string {
	switch kind & idMask {
	case Element & idMask:
		return "element"
	case Behavior & idMask:
		return "behavior"
	case StateMachine & idMask:
		return "state_machine"
	case Vertex & idMask:
		return "vertex"
	case State & idMask:
		return "state"
	case Transition & idMask:
		return "transition"
	case External & idMask:
		return "external"
	case Self & idMask:
		return "self"
	case Auto & idMask:
		return "auto"
	}
	return "null"
}

var (
	Null         = Kind(0)
	Element      = Kind(1)
	Behavior     = Kind(2, Element)
	StateMachine = Kind(3, Behavior)
	Vertex       = Kind(4, Element)
	State        = Kind(5, Vertex)
	Transition   = Kind(6, Element)
	External     = Kind(7, Transition)
	Self         = Kind(8, Transition)
	Auto         = Kind(9, Transition)
)
