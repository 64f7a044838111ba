package casefile

import "sort"

// SortedPhotos returns the photos in presentation order: ascending order
// index, ties resolved by insertion sequence so the view is stable even
// while indices are being rewritten.
func (c *Case) SortedPhotos() []*CasePhoto {
	out := append([]*CasePhoto(nil), c.Photos...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// AppendPhoto adds the photo at the end of the case.
func (c *Case) AppendPhoto(p *CasePhoto) {
	p.CaseID = c.ID
	p.OrderIndex = len(c.Photos)
	p.Seq = c.takeSeq()
	c.Photos = append(c.Photos, p)
	c.index(p)
	c.Touch()
}

// InsertPhotoAfter adds the photo directly after the referenced photo.
// When the reference does not belong to this case the call is a no-op and
// the photo is not added.
func (c *Case) InsertPhotoAfter(p *CasePhoto, refID string) {
	ref := c.Photo(refID)
	if ref == nil {
		return
	}
	for _, q := range c.Photos {
		if q.OrderIndex > ref.OrderIndex {
			q.OrderIndex++
		}
	}
	p.CaseID = c.ID
	p.OrderIndex = ref.OrderIndex + 1
	p.Seq = c.takeSeq()
	c.Photos = append(c.Photos, p)
	c.index(p)
	c.Touch()
}

// RemovePhoto detaches the photo and closes the ordering gap. Returns the
// removed record, nil when the photo does not belong to this case.
func (c *Case) RemovePhoto(id string) *CasePhoto {
	p := c.Photo(id)
	if p == nil {
		return nil
	}
	c.detach(p)
	c.normalize()
	c.Touch()
	return p
}

// ReorderPhoto moves a photo directly before another one. An empty beforeID
// moves the photo to the end. Calls referencing photos outside the case are
// no-ops. The whole sequence is renumbered from scratch, so repeated drag
// updates converge instead of drifting.
func (c *Case) ReorderPhoto(movedID, beforeID string) {
	moved := c.Photo(movedID)
	if moved == nil || movedID == beforeID {
		return
	}
	var before *CasePhoto
	if beforeID != "" {
		if before = c.Photo(beforeID); before == nil {
			return
		}
	}

	ordered := make([]*CasePhoto, 0, len(c.Photos))
	for _, q := range c.SortedPhotos() {
		if q == moved {
			continue
		}
		if q == before {
			ordered = append(ordered, moved)
		}
		ordered = append(ordered, q)
	}
	if before == nil {
		ordered = append(ordered, moved)
	}
	for i, q := range ordered {
		q.OrderIndex = i
	}
	c.Touch()
}

// SortedAttachments returns the attachments in presentation order.
func (c *Case) SortedAttachments() []*CaseAttachment {
	out := append([]*CaseAttachment(nil), c.Attachments...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AppendAttachment adds the attachment at the end of the attachment list.
func (c *Case) AppendAttachment(a *CaseAttachment) {
	a.CaseID = c.ID
	a.OrderIndex = len(c.Attachments)
	c.Attachments = append(c.Attachments, a)
	c.Touch()
}

// RemoveAttachment detaches the attachment and renumbers the rest.
func (c *Case) RemoveAttachment(id string) *CaseAttachment {
	removed := c.Attachment(id)
	if removed == nil {
		return nil
	}
	kept := c.Attachments[:0]
	for _, a := range c.Attachments {
		if a != removed {
			kept = append(kept, a)
		}
	}
	c.Attachments = kept
	for i, a := range c.SortedAttachments() {
		a.OrderIndex = i
	}
	c.Touch()
	return removed
}

// normalize rewrites the order indices to a dense 0..n-1 run, keeping the
// current relative order.
func (c *Case) normalize() {
	for i, p := range c.SortedPhotos() {
		p.OrderIndex = i
	}
}

func (c *Case) takeSeq() int64 {
	if c.byID == nil {
		c.Reindex()
	}
	seq := c.nextSeq
	c.nextSeq++
	return seq
}

func (c *Case) index(p *CasePhoto) {
	if c.byID == nil {
		c.Reindex()
		return
	}
	c.byID[p.ID] = p
}

func (c *Case) detach(p *CasePhoto) {
	kept := c.Photos[:0]
	for _, q := range c.Photos {
		if q != p {
			kept = append(kept, q)
		}
	}
	c.Photos = kept
	delete(c.byID, p.ID)
}
