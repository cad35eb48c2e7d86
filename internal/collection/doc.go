// Package collection delivers the values of a many-valued import into the
// slot that receives them.
//
// A slot that can be written with a whole new collection (for example a
// []T field with a setter) simply gets a freshly built value. Otherwise the
// part's own collection instance is reused: it is read from the slot, or
// created with the type's zero-argument constructor when the slot is empty,
// then cleared and repopulated one item at a time through the uniform
// Mutable view.
package collection
