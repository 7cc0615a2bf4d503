package main

import (
	"strconv"
	"time"
)

// settable flag values record whether the flag was given so that an
// explicit zero can still override the config file.

type settableBool struct {
	set bool
	val bool
}

func (b *settableBool) Set(s string) error {
	b.set = true
	if s == "" {
		b.val = true
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.val = v
	return nil
}

func (b *settableBool) String() string {
	if b == nil || !b.set {
		return "false"
	}
	return strconv.FormatBool(b.val)
}

func (b *settableBool) IsBoolFlag() bool { return true }

type settableDuration struct {
	set bool
	val time.Duration
}

func (d *settableDuration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.set = true
	d.val = v
	return nil
}

func (d *settableDuration) String() string {
	if d == nil || !d.set {
		return "0s"
	}
	return d.val.String()
}

type settableInt struct {
	set bool
	val int
}

func (i *settableInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	i.set = true
	i.val = v
	return nil
}

func (i *settableInt) String() string {
	if i == nil || !i.set {
		return "0"
	}
	return strconv.Itoa(i.val)
}
