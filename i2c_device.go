package main

// I2CDevice is the capability interface every I2C slave implements. The bus
// holds the *currently selected* device as a direct reference once address
// resolution succeeds, avoiding a scan over every device on every bit of an
// in-flight transaction.
type I2CDevice interface {
	Matches(addr byte) bool
	Start()
	Write(b byte)
	ReadNext() byte
	Stop()
}
