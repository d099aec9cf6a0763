package framing

import (
	"encoding/binary"
	"hash/crc32"
	"net"
	"testing"
	"time"
)

func pipe() (net.Conn, net.Conn) {
	return net.Pipe()
}

func TestSendReceiveRoundTrip(t *testing.T) {
	a, b := pipe()
	defer a.Close()
	defer b.Close()

	connA := New(a, 0, 0)
	connB := New(b, 0, 0)
	connA.Start()
	connB.Start()
	defer connA.Close()
	defer connB.Close()

	if err := connA.Send([]byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case ev := <-connB.Events():
		if ev.Kind != EventResponse || string(ev.Payload) != "hello" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPingDelivered(t *testing.T) {
	a, b := pipe()
	defer a.Close()
	defer b.Close()

	connA := New(a, 0, 20*time.Millisecond)
	connB := New(b, 0, 0)
	connA.Start()
	connB.Start()
	defer connA.Close()
	defer connB.Close()

	select {
	case ev := <-connB.Events():
		if ev.Kind != EventPing {
			t.Fatalf("expected EventPing, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ping")
	}
}

func TestCorruptedChecksumYieldsDataCorrupted(t *testing.T) {
	a, b := pipe()
	defer a.Close()
	defer b.Close()

	connB := New(b, 0, 0)
	connB.Start()
	defer connB.Close()

	// Hand-craft a Data frame with a payload whose trailing CRC does not match.
	payload := []byte("corrupt me")
	frame := []byte{0}
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	frame = binary.BigEndian.AppendUint32(frame, crc32.ChecksumIEEE(payload)+1)

	go a.Write(frame)

	select {
	case ev := <-connB.Events():
		if ev.Kind != EventLocalError || ev.Code != ErrDataCorrupted {
			t.Fatalf("expected local DataCorrupted error, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for corruption event")
	}

	// The peer should observe the terminal Error frame we wrote back.
	connA := New(a, 0, 0)
	connA.Start()
	defer connA.Close()
	select {
	case ev := <-connA.Events():
		if ev.Kind != EventRemoteError || ev.Code != ErrDataCorrupted {
			t.Fatalf("expected remote DataCorrupted error, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote error propagation")
	}
}

func TestOversizedPayloadRejected(t *testing.T) {
	a, b := pipe()
	defer a.Close()
	defer b.Close()

	connB := New(b, 8, 0) // tiny cap
	connB.Start()
	defer connB.Close()

	payload := make([]byte, 9)
	frame := []byte{0}
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	frame = binary.BigEndian.AppendUint32(frame, crc32.ChecksumIEEE(payload))

	go a.Write(frame)

	select {
	case ev := <-connB.Events():
		if ev.Kind != EventLocalError || ev.Code != ErrMaxDataLengthExceeded {
			t.Fatalf("expected MaxDataLengthExceeded, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for oversize rejection")
	}
}

func TestWriteErrorClosesConnAndSignalsReader(t *testing.T) {
	a, b := pipe()
	defer a.Close()

	connB := New(b, 0, 0)
	connB.Start()
	defer connB.Close()

	// Close the underlying stream out from under the writer, without going
	// through connB.Close(), so the next Send hits a genuine write error.
	b.Close()

	if err := connB.Send([]byte("never arrives")); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case ev := <-connB.Events():
		if ev.Kind != EventEOF && ev.Kind != EventLocalError {
			t.Fatalf("expected the write error to surface as EOF or a local error, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the write error to signal the reader")
	}
}

func TestEOFOnClose(t *testing.T) {
	a, b := pipe()
	defer b.Close()

	connB := New(b, 0, 0)
	connB.Start()
	defer connB.Close()

	a.Close()

	select {
	case ev := <-connB.Events():
		if ev.Kind != EventEOF {
			t.Fatalf("expected EventEOF, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EOF")
	}
}
