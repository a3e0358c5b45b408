package ws

import "testing"

func TestSendAfterCloseAlwaysFails(t *testing.T) {
	client := newTestClient(1)
	client.Close()

	// The closed check must win deterministically, not race the free buffer.
	for i := 0; i < 200; i++ {
		if err := client.Send([]byte("late")); err == nil {
			t.Fatalf("send %d on a closed client returned nil", i)
		}
	}
	if got := len(client.send); got != 0 {
		t.Errorf("closed client buffered %d payloads", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	client := newTestClient(1)
	client.Close()
	client.Close()

	select {
	case <-client.done:
	default:
		t.Error("done channel should be closed")
	}
}

func TestSendFullBufferClosesClient(t *testing.T) {
	client := newTestClient(1)

	for i := 0; i < sendBuffer; i++ {
		if err := client.Send([]byte("fill")); err != nil {
			t.Fatalf("send %d failed while the buffer had room: %v", i, err)
		}
	}
	if err := client.Send([]byte("overflow")); err == nil {
		t.Fatal("send into a full buffer must fail")
	}

	select {
	case <-client.done:
	default:
		t.Error("overflowing the buffer must close the client")
	}
}
