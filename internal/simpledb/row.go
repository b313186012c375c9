package simpledb

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	IDSize       = 4
	UsernameSize = 32
	EmailSize    = 255
	RowSize      = IDSize + UsernameSize + EmailSize
)

var ErrFieldTooLong = errors.New("field too long")

// Row is the single fixed-width record type stored in the table.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

func NewRow(id uint32, username, email string) (Row, error) {
	aRow := Row{
		ID:       id,
		Username: username,
		Email:    email,
	}
	if err := aRow.Validate(); err != nil {
		return Row{}, err
	}
	return aRow, nil
}

// Validate checks text fields fit their fixed widths.
func (r Row) Validate() error {
	if len(r.Username) > UsernameSize {
		return fmt.Errorf("%w: username is %d bytes, max %d", ErrFieldTooLong, len(r.Username), UsernameSize)
	}
	if len(r.Email) > EmailSize {
		return fmt.Errorf("%w: email is %d bytes, max %d", ErrFieldTooLong, len(r.Email), EmailSize)
	}
	return nil
}

func (r Row) Size() uint64 {
	return RowSize
}

// Marshal writes the row into buf, text fields are right padded with NUL bytes.
func (r Row) Marshal(buf []byte) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	size := r.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)
	marshalUint32(buf, r.ID, i)
	i += IDSize

	clear(buf[i : i+UsernameSize])
	copy(buf[i:], r.Username)
	i += UsernameSize

	clear(buf[i : i+EmailSize])
	copy(buf[i:], r.Email)

	return buf, nil
}

func (r *Row) Unmarshal(buf []byte) (uint64, error) {
	if uint64(len(buf)) < RowSize {
		return 0, fmt.Errorf("row buffer too small: %d", len(buf))
	}

	i := uint64(0)
	r.ID = unmarshalUint32(buf, i)
	i += IDSize

	r.Username = string(bytes.Trim(buf[i:i+UsernameSize], "\x00"))
	i += UsernameSize

	r.Email = string(bytes.Trim(buf[i:i+EmailSize], "\x00"))
	i += EmailSize

	return i, nil
}
