// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := New(KindConfig, "invalid input")
	assert.Equal(t, "invalid input", err.Error())

	wrapped := Wrap(err, KindIO, "failed to validate")
	assert.Equal(t, "failed to validate: invalid input", wrapped.Error())
}

func TestGetKind(t *testing.T) {
	err := New(KindConfig, "invalid input")
	assert.Equal(t, KindConfig, GetKind(err))

	wrapped := Wrap(err, KindKernel, "failed")
	assert.Equal(t, KindKernel, GetKind(wrapped))

	assert.Equal(t, KindUnknown, GetKind(errors.New("std error")))
}

func TestAttr(t *testing.T) {
	err := New(KindKernel, "could not queue ban")
	err = Attr(err, "process", "ssh")
	err = Attr(err, "ip", "203.0.113.9")

	attrs := GetAttributes(err)
	assert.Equal(t, "ssh", attrs["process"])
	assert.Equal(t, "203.0.113.9", attrs["ip"])

	wrapped := Wrap(err, KindKernel, "commit failed")
	wrapped = Attr(wrapped, "batch", 1)

	allAttrs := GetAttributes(wrapped)
	assert.Equal(t, "ssh", allAttrs["process"])
	assert.Equal(t, 1, allAttrs["batch"])
}

func TestAttrWrapsPlainError(t *testing.T) {
	plain := errors.New("netlink: no such file or directory")
	tagged := Attr(plain, "set", "banned4")

	assert.Equal(t, KindUnknown, GetKind(tagged))
	assert.Equal(t, "banned4", GetAttributes(tagged)["set"])
}

func TestGetAttributesOnNonErrorValue(t *testing.T) {
	assert.Nil(t, GetAttributes(errors.New("plain")))
}
