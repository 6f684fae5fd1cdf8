package main

import (
	"net"
	"time"
)

func pastDeadline() time.Time { return time.Now().Add(time.Microsecond) }

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// UARTNetworkBridge bridges the UART's bit-serial engine to a single
// accepted TCP client. Socket errors silently drop the connection: the
// UART's host-visible state is unaffected and the next connect attempt
// creates a new client.
type UARTNetworkBridge struct {
	port     int
	listener net.Listener
	conn     net.Conn

	uart *UART16550
	log  *diagLogger

	readBuf [uartRXStagingSize]byte
}

func NewUARTNetworkBridge(uart *UART16550, port int, logger *diagLogger) *UARTNetworkBridge {
	b := &UARTNetworkBridge{uart: uart, port: port, log: logger}
	uart.onByteOut = b.send
	return b
}

// Listen opens the fixed TCP listener. Failure is a host-device error: log
// and continue with networking disabled.
func (b *UARTNetworkBridge) Listen() {
	ln, err := net.Listen("tcp", fmtAddr(b.port))
	if err != nil {
		if b.log != nil {
			b.log.Printf("uart: listen on port %d failed: %v", b.port, err)
		}
		return
	}
	b.listener = ln
}

func fmtAddr(port int) string {
	return ":" + itoa(port)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Connect accepts one pending connection, non-blocking from the caller's
// perspective in the sense that it is only invoked by explicit user action
//, never from the tight tick loop.
func (b *UARTNetworkBridge) Connect() bool {
	if b.listener == nil {
		return false
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	conn, err := b.listener.Accept()
	if err != nil {
		if b.log != nil {
			b.log.Printf("uart: accept failed: %v", err)
		}
		return false
	}
	b.conn = conn
	return true
}

func (b *UARTNetworkBridge) Disconnect() {
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// Poll is called once per UART tick: a non-blocking,
// zero-timeout read of any available data, staged into the UART's RX
// buffer.
func (b *UARTNetworkBridge) Poll() {
	if b.conn == nil {
		return
	}
	b.conn.SetReadDeadline(pastDeadline())
	n, err := b.conn.Read(b.readBuf[:])
	if n > 0 {
		b.uart.ReceiveFromNetwork(b.readBuf[:n])
	}
	if err != nil && !isTimeout(err) {
		b.conn.Close()
		b.conn = nil
	}
}

func (b *UARTNetworkBridge) send(by byte) {
	if b.conn == nil {
		return
	}
	if _, err := b.conn.Write([]byte{by}); err != nil {
		b.conn.Close()
		b.conn = nil
	}
}

func (b *UARTNetworkBridge) Close() {
	b.Disconnect()
	if b.listener != nil {
		b.listener.Close()
	}
}
