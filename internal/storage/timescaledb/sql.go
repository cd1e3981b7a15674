package timescaledb

const createTableSQL = `CREATE TABLE IF NOT EXISTS readings (
	time timestamptz NOT NULL,
	stationname text,
	stationtype text,
	temperature double precision,
	humidity double precision,
	pressure double precision,
	windspeed double precision,
	windgust double precision,
	winddir double precision,
	raintotal double precision,
	rainrate double precision,
	uvintensity double precision,
	uvindex double precision,
	illuminance double precision,
	batterylow boolean,
	night boolean,
	compassdirection text,
	winddescription text,
	lightdescription text,
	raindescription text
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('readings', 'time', if_not_exists => TRUE);`
