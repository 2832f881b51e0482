package metadata

import (
	"strconv"
	"strings"
)

// MultiValueJoiner separates values when a multi-valued tag is read as a
// single string.
const MultiValueJoiner = "; "

// InternalPrefix marks computed tags that are never written to files.
const InternalPrefix = "~"

// ImageRef identifies one piece of cover art attached to a container.
type ImageRef struct {
	URL         string
	Description string
	Main        bool
}

// Container is an insertion-ordered mapping from tag name to a list of
// values, plus a duration and cover-art references. The zero value is not
// usable; construct with New.
type Container struct {
	store map[string][]string
	keys  []string

	// Length is the duration in milliseconds. Never negative.
	Length int64

	// Images are cover-art references in the order they were attached.
	// HasCommonImages is true while every contributing source agreed on
	// the same image set.
	Images          []ImageRef
	HasCommonImages bool
}

// New returns an empty container.
func New() *Container {
	return &Container{
		store:           make(map[string][]string),
		HasCommonImages: true,
	}
}

func normalizeTag(name string) string {
	return strings.TrimRight(name, ":")
}

// IsInternal reports whether a tag name is a computed internal tag.
func IsInternal(name string) bool {
	return strings.HasPrefix(name, InternalPrefix)
}

// Get returns the values of a tag joined with MultiValueJoiner, or ""
// when the tag is absent.
func (c *Container) Get(name string) string {
	values := c.store[normalizeTag(name)]
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, MultiValueJoiner)
}

// GetAll returns the value list for a tag. The returned slice is the
// container's own; callers must not mutate it.
func (c *Container) GetAll(name string) []string {
	return c.store[normalizeTag(name)]
}

// Contains reports whether the tag has at least one value.
func (c *Container) Contains(name string) bool {
	return len(c.store[normalizeTag(name)]) > 0
}

// Set replaces the values of a tag. Empty values are dropped; setting a
// tag to no values removes it.
func (c *Container) Set(name string, values ...string) {
	name = normalizeTag(name)
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		c.Delete(name)
		return
	}
	if _, ok := c.store[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.store[name] = kept
}

// SetInt stores an integer value under the tag.
func (c *Container) SetInt(name string, value int) {
	c.Set(name, strconv.Itoa(value))
}

// Add appends one value to a tag, creating the tag if needed.
func (c *Container) Add(name, value string) {
	if value == "" {
		return
	}
	name = normalizeTag(name)
	if _, ok := c.store[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.store[name] = append(c.store[name], value)
}

// AddUnique appends a value only if the tag does not already hold it.
func (c *Container) AddUnique(name, value string) {
	for _, existing := range c.GetAll(name) {
		if existing == value {
			return
		}
	}
	c.Add(name, value)
}

// Delete removes a tag entirely.
func (c *Container) Delete(name string) {
	name = normalizeTag(name)
	if _, ok := c.store[name]; !ok {
		return
	}
	delete(c.store, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns tag names in insertion order.
func (c *Container) Keys() []string {
	cp := make([]string, len(c.keys))
	copy(cp, c.keys)
	return cp
}

// RawItem is one tag with its full value list, as yielded by RawItems.
type RawItem struct {
	Name   string
	Values []string
}

// RawItems returns every tag with its value list in insertion order,
// internal tags included. Value slices are copies.
func (c *Container) RawItems() []RawItem {
	items := make([]RawItem, 0, len(c.keys))
	for _, name := range c.keys {
		values := c.store[name]
		cp := make([]string, len(values))
		copy(cp, values)
		items = append(items, RawItem{Name: name, Values: cp})
	}
	return items
}

// Len returns the number of tags plus attached images.
func (c *Container) Len() int {
	return len(c.store) + len(c.Images)
}

// Clear removes all tags, images, and the length.
func (c *Container) Clear() {
	c.store = make(map[string][]string)
	c.keys = nil
	c.Images = nil
	c.Length = 0
	c.HasCommonImages = true
}

// Copy replaces this container's contents with a deep copy of other.
func (c *Container) Copy(other *Container) {
	c.Clear()
	c.update(other, true)
}

// CopyWithoutImages is Copy but leaves this container's images untouched.
func (c *Container) CopyWithoutImages(other *Container) {
	images := c.Images
	common := c.HasCommonImages
	c.Clear()
	c.update(other, false)
	c.Images = images
	c.HasCommonImages = common
}

// Update merges other into this container, replacing overlapping tags.
func (c *Container) Update(other *Container) {
	c.update(other, true)
}

func (c *Container) update(other *Container, copyImages bool) {
	if other == nil {
		return
	}
	for _, item := range other.RawItems() {
		c.Set(item.Name, item.Values...)
	}
	if copyImages && len(other.Images) > 0 {
		c.Images = make([]ImageRef, len(other.Images))
		copy(c.Images, other.Images)
		c.HasCommonImages = other.HasCommonImages
	}
	if other.Length > 0 {
		c.Length = other.Length
	}
}

// Clone returns a deep copy of the container.
func (c *Container) Clone() *Container {
	clone := New()
	clone.Copy(c)
	return clone
}

// Diff returns a new container holding only the tags whose value list in c
// differs from other. The comparison is order-sensitive and covers
// internal tags; callers exporting the result filter those as needed.
func (c *Container) Diff(other *Container) *Container {
	d := New()
	for _, item := range c.RawItems() {
		if !equalValues(item.Values, other.GetAll(item.Name)) {
			d.Set(item.Name, item.Values...)
		}
	}
	return d
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ApplyFunc maps fn over every value of every non-internal tag.
func (c *Container) ApplyFunc(fn func(string) string) {
	for _, name := range c.Keys() {
		if IsInternal(name) {
			continue
		}
		values := c.store[name]
		mapped := make([]string, 0, len(values))
		for _, v := range values {
			mapped = append(mapped, fn(v))
		}
		c.Set(name, mapped...)
	}
}

// StripWhitespace trims leading and trailing whitespace from every
// non-internal tag value.
func (c *Container) StripWhitespace() {
	c.ApplyFunc(strings.TrimSpace)
}
