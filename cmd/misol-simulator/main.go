// misol-simulator emulates a Misol WH24-family weather station console over
// TCP, for testing misolweather without hardware on the bench.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"net"
	"time"
)

type simulatedConditions struct {
	temperatureC float64
	humidity     uint8
	windDir      uint16
	windSpeedRaw uint16 // counter units, km/h = raw/8*1.12
	windGustRaw  uint8
	rainCounter  uint16
	uvRaw        uint16
	lux          uint32
	pressurePa   uint32 // Pa, wire value is hPa*100
	batteryLow   bool
}

func main() {
	listenAddr := flag.String("listen", ":6666", "TCP listen address")
	interval := flag.Duration("interval", 16*time.Second, "Interval between packets")
	withPressure := flag.Bool("pressure", true, "Append the barometric pressure extension")
	badChecksumRate := flag.Float64("bad-checksum-rate", 0.0, "Probability of corrupting the primary checksum (0.0-1.0)")
	truncateRate := flag.Float64("truncate-rate", 0.0, "Probability of sending a truncated packet (0.0-1.0)")
	flag.Parse()

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("could not listen on %s: %v", *listenAddr, err)
	}
	log.Printf("misol-simulator listening on %s, emitting every %v", *listenAddr, *interval)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept error: %v", err)
			continue
		}
		log.Printf("client connected: %v", conn.RemoteAddr())
		go serve(conn, *interval, *withPressure, *badChecksumRate, *truncateRate)
	}
}

func serve(conn net.Conn, interval time.Duration, withPressure bool, badChecksumRate, truncateRate float64) {
	defer conn.Close()

	start := time.Now()
	for {
		cond := conditionsAt(time.Since(start))
		packet := encodePacket(cond, withPressure)

		if rand.Float64() < badChecksumRate {
			packet[16] ^= 0xA5
			log.Printf("corrupting primary checksum")
		}
		if rand.Float64() < truncateRate {
			packet = packet[:10]
			log.Printf("truncating packet")
		}

		if _, err := conn.Write(packet); err != nil {
			log.Printf("client disconnected: %v", err)
			return
		}
		log.Printf("sent %d-byte packet: temp=%.1f°C wind=%d rain=%d", len(packet), cond.temperatureC, cond.windSpeedRaw, cond.rainCounter)

		time.Sleep(interval)
	}
}

// conditionsAt fabricates slowly drifting weather
func conditionsAt(elapsed time.Duration) simulatedConditions {
	phase := elapsed.Seconds() / 600 * 2 * math.Pi

	return simulatedConditions{
		temperatureC: 18 + 6*math.Sin(phase),
		humidity:     uint8(55 + 15*math.Sin(phase/3)),
		windDir:      uint16(180+int(170*math.Sin(phase/2))) % 360,
		windSpeedRaw: uint16(20 + 15*math.Sin(phase)),
		windGustRaw:  uint8(30 + 20*math.Sin(phase)),
		rainCounter:  uint16(elapsed / (5 * time.Minute)), // one bucket tip every 5 minutes
		uvRaw:        uint16(800 + 700*math.Sin(phase/4)),
		lux:          uint32(40000 + 35000*math.Sin(phase/4)),
		pressurePa:   uint32(101325 + 200*math.Sin(phase/8)),
		batteryLow:   false,
	}
}

// encodePacket builds a wire frame: 17-byte core plus an optional 4-byte
// pressure extension, each with an 8-bit truncating checksum.
func encodePacket(c simulatedConditions, withPressure bool) []byte {
	size := 17
	if withPressure {
		size = 21
	}
	p := make([]byte, size)

	tempRaw := uint16(c.temperatureC*10 + 400)

	p[0] = 0x24
	p[1] = 0x51 // transmitter id
	p[2] = byte(c.windDir)
	p[3] = byte(c.windDir>>1&0x80) | byte(c.windSpeedRaw>>4&0x10) | byte(tempRaw>>8&0x07)
	if c.batteryLow {
		p[3] |= 0x08
	}
	p[4] = byte(tempRaw)
	p[5] = c.humidity
	p[6] = byte(c.windSpeedRaw)
	p[7] = c.windGustRaw
	p[8] = byte(c.rainCounter >> 8)
	p[9] = byte(c.rainCounter)
	p[10] = byte(c.uvRaw >> 8)
	p[11] = byte(c.uvRaw)
	p[12] = byte(c.lux >> 16)
	p[13] = byte(c.lux >> 8)
	p[14] = byte(c.lux)
	p[15] = 0x00
	p[16] = checksum(p[:16])

	if withPressure {
		p[17] = byte(c.pressurePa >> 16)
		p[18] = byte(c.pressurePa >> 8)
		p[19] = byte(c.pressurePa)
		p[20] = checksum(p[17:20])
	}

	return p
}

func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
