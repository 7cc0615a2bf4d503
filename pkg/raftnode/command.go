package raftnode

import (
	"encoding/json"

	"github.com/conuredb/rosterdb/roster"
)

type CommandType uint8

const (
	CmdInsert CommandType = iota
	CmdDelete
)

type Command struct {
	Type    CommandType    `json:"type"`
	Student roster.Student `json:"student"`
}

func EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

func DecodeCommand(b []byte) (Command, error) {
	var c Command
	err := json.Unmarshal(b, &c)
	return c, err
}
