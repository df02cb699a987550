package model

//go:generate go run github.com/dmarkham/enumer -type PhoneType -trimprefix PhoneType -transform upper -json -sql -output phone_type.gen.go

type PhoneType int

const (
	PhoneTypeMobile PhoneType = iota
	PhoneTypeHome
	PhoneTypeWork
	PhoneTypeFax
)
