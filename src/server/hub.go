package server

import (
	"context"
)

// runHub is the connection registry's main loop: register/unregister clients
// and fan out broadcast alerts, pruning any client whose send buffer is full
// rather than blocking the hub.
func (s *Server) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.clientsMu.Lock()
			for client := range s.clients {
				close(client.send)
				delete(s.clients, client)
			}
			s.clientsMu.Unlock()
			return

		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client] = struct{}{}
			s.clientsMu.Unlock()

		case client := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()

		case snapshot := <-s.broadcast:
			s.clientsMu.Lock()
			for client := range s.clients {
				select {
				case client.send <- snapshot:
				default:
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.clientsMu.Unlock()
		}
	}
}
