// Package transport owns the UDP socket each node listens and sends on.
// There is exactly one socket per router or host; it is opened for the
// lifetime of the node.
package transport

import (
	"errors"
	"fmt"
	"net"

	"bjoernblessin.de/lsnet/logx"
)

// Datagram is a single inbound UDP packet paired with its sender.
type Datagram struct {
	From *net.UDPAddr
	Data []byte
}

// Socket is the transport boundary used by routers and hosts. It is an
// interface so tests can substitute an in-memory fake without binding
// real ports.
type Socket interface {
	// Open binds a UDP listener on the given IPv4 address and port. A
	// port of 0 picks an ephemeral port.
	Open(ip string, port int) error

	// Close releases the underlying socket. Subsequent sends fail.
	Close() error

	// LocalAddr returns the bound address, valid only after Open.
	LocalAddr() (ip string, port int)

	// SendTo transmits data to the given address and port.
	SendTo(ip string, port int, data []byte) error

	// Inbound returns the channel of datagrams read from the socket.
	// Exactly one reader should consume this channel (the node's
	// receiver goroutine).
	Inbound() <-chan Datagram
}

type udpSocket struct {
	conn    *net.UDPConn
	inbound chan Datagram
	closed  chan struct{}
}

// New creates an unopened Socket.
func New() Socket {
	return &udpSocket{
		inbound: make(chan Datagram, 64),
		closed:  make(chan struct{}),
	}
}

func (s *udpSocket) Open(ip string, port int) error {
	if s.conn != nil {
		return errors.New("socket already open")
	}

	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("bind udp socket: %w", err)
	}

	s.conn = conn
	go s.readLoop()

	return nil
}

func (s *udpSocket) readLoop() {
	buf := make([]byte, 2048)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
			}
			logx.Warnf("socket read error: %v", err)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		select {
		case s.inbound <- Datagram{From: from, Data: data}:
		default:
			logx.Warnf("inbound queue full, dropping datagram from %v", from)
		}
	}
}

func (s *udpSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	close(s.closed)
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *udpSocket) LocalAddr() (string, int) {
	if s.conn == nil {
		return "", 0
	}
	addr := s.conn.LocalAddr().(*net.UDPAddr)
	return addr.IP.String(), addr.Port
}

func (s *udpSocket) SendTo(ip string, port int, data []byte) error {
	if s.conn == nil {
		return errors.New("socket not open")
	}

	_, err := s.conn.WriteToUDP(data, &net.UDPAddr{IP: net.ParseIP(ip), Port: port})
	if err != nil {
		return fmt.Errorf("send to %s:%d: %w", ip, port, err)
	}

	return nil
}

func (s *udpSocket) Inbound() <-chan Datagram {
	return s.inbound
}
