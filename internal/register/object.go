package register

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/kernel"
	"github.com/tarachom/accountingstore/internal/metadata"
)

// Object is one information register record in object form.
//
// Thread-safety: not safe for concurrent use.
type Object struct {
	k      *kernel.Kernel
	def    metadata.TableDef
	fields []string
	slot   *kernel.Slot

	ID        ident.UniqueID
	Period    time.Time
	Owner     ident.UniqueID
	OwnerType string
	// Fields is the snapshot of the declared fields. Save clears it.
	Fields field.Row

	// IsNew is set by New until the first successful Save.
	IsNew bool
	// IsSaved reports the outcome of the last Read or Save.
	IsSaved bool
}

// NewObject binds an object to its table. With no fields, every declared
// column is read.
func NewObject(k *kernel.Kernel, table string, fields ...string) (*Object, error) {
	def, err := k.Table(table, metadata.KindRegisterObject)
	if err != nil {
		return nil, fmt.Errorf("register object: %w", err)
	}
	if len(fields) == 0 {
		fields = def.ColumnNames()
	}
	for _, f := range fields {
		if _, ok := def.Column(f); !ok {
			return nil, fmt.Errorf("register object %s: unknown field %q", table, f)
		}
	}
	return &Object{k: k, def: def, fields: fields, slot: kernel.NewSlot(k.Backend, def.Name)}, nil
}

// Table returns the bound table name.
func (o *Object) Table() string {
	return o.def.Name
}

// New resets the object to a fresh record with a generated identity.
func (o *Object) New() {
	o.ID = o.k.NewID()
	o.Period = time.Time{}
	o.Owner = ident.Empty
	o.OwnerType = ""
	o.Fields = field.Row{}
	o.IsNew = true
	o.IsSaved = false
}

// Read loads the record with id. It returns false without touching the
// object when id is empty, the object is new, or no record exists.
func (o *Object) Read(ctx context.Context, id ident.UniqueID) (bool, error) {
	if id.IsEmpty() || o.IsNew {
		return false, nil
	}
	rec, err := o.k.Backend.SelectRegisterInformationObject(ctx, o.slot.Tx(), id, o.def.Name, o.fields)
	if err != nil {
		return false, fmt.Errorf("read register object %s: %w", o.def.Name, err)
	}
	if rec == nil {
		return false, nil
	}

	o.ID = rec.ID
	o.Period = rec.Period
	o.Owner = rec.Owner
	o.OwnerType = rec.OwnerType
	o.Fields = rec.Fields
	o.IsSaved = true
	return true, nil
}

// Save inserts a new record or updates an existing one. Updating a record
// that no longer exists fails with an InvalidState *backend.StateError
// instead of inserting it again. The field snapshot is cleared and
// IsSaved set to the outcome either way. Save runs under the open
// transaction, if any.
func (o *Object) Save(ctx context.Context) (err error) {
	saved := false
	defer func() {
		o.Fields = field.Row{}
		o.IsSaved = saved
	}()

	if o.ID.IsEmpty() {
		return errors.New("save register object: identity is empty, call New or Read first")
	}

	rec := backend.RegisterRecord{
		Table:     o.def.Name,
		ID:        o.ID,
		Period:    o.Period,
		Owner:     o.Owner,
		OwnerType: o.OwnerType,
		Fields:    o.Fields,
		Tx:        o.slot.Tx(),
	}

	if o.IsNew {
		saved, err = o.k.Backend.InsertRegisterInformationObject(ctx, rec)
		if err != nil {
			return fmt.Errorf("save register object: %w", err)
		}
		if !saved {
			return &backend.StateError{
				Code:    backend.ErrCodeInvalidState,
				Message: "attempt to insert an existing object",
				Table:   o.def.Name,
				ID:      o.ID,
			}
		}
		o.IsNew = false
		return nil
	}

	exists, err := o.k.Backend.IsExistUniqueID(ctx, o.slot.Tx(), o.ID, o.def.Name)
	if err != nil {
		return fmt.Errorf("save register object: %w", err)
	}
	if !exists {
		return backend.NewInvalidStateError(o.def.Name, o.ID)
	}
	saved, err = o.k.Backend.UpdateRegisterInformationObject(ctx, rec)
	if err != nil {
		return fmt.Errorf("save register object: %w", err)
	}
	if !saved {
		return backend.NewInvalidStateError(o.def.Name, o.ID)
	}
	return nil
}

// Delete removes the record and clears the snapshot.
func (o *Object) Delete(ctx context.Context) error {
	if err := o.k.Backend.DeleteRegisterInformationObject(ctx, o.slot.Tx(), o.def.Name, o.ID); err != nil {
		return fmt.Errorf("delete register object: %w", err)
	}
	o.Fields = field.Row{}
	o.IsSaved = false
	return nil
}

// Tx returns the current transaction slot value.
func (o *Object) Tx() backend.TxID {
	return o.slot.Tx()
}

// BeginTransaction opens the slot. Fails while a transaction is open.
func (o *Object) BeginTransaction(ctx context.Context) error {
	return o.slot.Begin(ctx)
}

// CommitTransaction commits and empties the slot.
func (o *Object) CommitTransaction(ctx context.Context) error {
	return o.slot.Commit(ctx)
}

// RollbackTransaction rolls back and empties the slot.
func (o *Object) RollbackTransaction(ctx context.Context) error {
	return o.slot.Rollback(ctx)
}

// InTransaction runs fn inside a transaction that is committed when fn
// succeeds and rolled back when it fails or panics.
func (o *Object) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return o.slot.Run(ctx, fn)
}
