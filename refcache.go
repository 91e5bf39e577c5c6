package cram

// ReferenceSource supplies reference bases for a sequence id, 1-based
// alignment-coordinate-aligned (index 0 corresponds to reference
// position 1), per spec.md §6.
type ReferenceSource interface {
	GetReferenceBases(sequenceID int32, upperCase bool) ([]byte, error)
}

// referenceCache holds the most recently fetched reference bases,
// invalidated whenever the container's sequence id changes (spec.md §5
// "Shared resources").
type referenceCache struct {
	source ReferenceSource

	prevSeqID int32
	loaded    bool
	bases     []byte
}

func newReferenceCache(source ReferenceSource) *referenceCache {
	return &referenceCache{source: source}
}

// Bases returns the reference bases for sequenceID, refetching only when
// the sequence id differs from the last request.
func (c *referenceCache) Bases(sequenceID int32) ([]byte, error) {
	if c.loaded && c.prevSeqID == sequenceID {
		return c.bases, nil
	}
	if c.source == nil {
		return nil, nil
	}
	bases, err := c.source.GetReferenceBases(sequenceID, true)
	if err != nil {
		return nil, err
	}
	c.prevSeqID = sequenceID
	c.bases = bases
	c.loaded = true
	return bases, nil
}
